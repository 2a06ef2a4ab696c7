package trivia

// Byte codes for the compact game-record encoding. Codes are stable across
// versions: an unrecognized byte is a hard decode failure, never a skip.

var category2code = map[string]byte{
	"General Knowledge":                     9,
	"Entertainment: Books":                  10,
	"Entertainment: Film":                   11,
	"Entertainment: Music":                  12,
	"Entertainment: Musicals & Theatres":    13,
	"Entertainment: Television":             14,
	"Entertainment: Video Games":            15,
	"Entertainment: Board Games":            16,
	"Science & Nature":                      17,
	"Science: Computers":                    18,
	"Science: Mathematics":                  19,
	"Mythology":                             20,
	"Sports":                                21,
	"Geography":                             22,
	"History":                               23,
	"Politics":                              24,
	"Art":                                   25,
	"Celebrities":                           26,
	"Animals":                               27,
	"Vehicles":                              28,
	"Entertainment: Comics":                 29,
	"Science: Gadgets":                      30,
	"Entertainment: Japanese Anime & Manga": 31,
	"Entertainment: Cartoon & Animations":   32,
}

var code2category = invert(category2code)

var kind2code = map[Kind]byte{
	KindMultiple: 0,
	KindBoolean:  1,
}

var code2kind = invert(kind2code)

var difficulty2code = map[Difficulty]byte{
	DifficultyEasy:   0,
	DifficultyMedium: 1,
	DifficultyHard:   2,
}

var code2difficulty = invert(difficulty2code)

func invert[K comparable](m map[K]byte) map[byte]K {
	inv := make(map[byte]K, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

func CategoryCode(name string) (byte, bool) {
	c, ok := category2code[name]
	return c, ok
}

func CategoryName(code byte) (string, bool) {
	n, ok := code2category[code]
	return n, ok
}

func KindCode(k Kind) (byte, bool) {
	c, ok := kind2code[k]
	return c, ok
}

func KindFromCode(code byte) (Kind, bool) {
	k, ok := code2kind[code]
	return k, ok
}

func DifficultyCode(d Difficulty) (byte, bool) {
	c, ok := difficulty2code[d]
	return c, ok
}

func DifficultyFromCode(code byte) (Difficulty, bool) {
	d, ok := code2difficulty[code]
	return d, ok
}
