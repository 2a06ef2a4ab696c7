package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorious/lilbot/internal/record"
)

// newArchiveCmd moves game history in and out of the compact binary
// archive form, one encoded game after another until EOF.
func newArchiveCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Export or import game history as a compact binary archive",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write every recorded game to a binary archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveExport(cmd.Context(), *configPath, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Append the games from a binary archive to the record store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveImport(cmd.Context(), *configPath, args[0])
		},
	})

	return cmd
}

func runArchiveExport(ctx context.Context, configPath, out string) error {
	c, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, c)
	if err != nil {
		return err
	}

	players, err := store.Players(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var exported int
	for _, p := range players {
		games, err := store.History(ctx, p)
		if err != nil {
			return fmt.Errorf("history for %q: %w", p, err)
		}
		for _, g := range games {
			if err := record.EncodeBinary(w, g); err != nil {
				return fmt.Errorf("encode game for %q: %w", p, err)
			}
			exported++
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("exported %d games to %s\n", exported, out)
	return nil
}

func runArchiveImport(ctx context.Context, configPath, in string) error {
	c, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, c)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var imported int
	for {
		if _, err := r.Peek(1); errors.Is(err, io.EOF) {
			break
		}

		g, err := record.DecodeBinary(r)
		if err != nil {
			return fmt.Errorf("decode game %d: %w", imported+1, err)
		}
		if err := store.Append(ctx, g); err != nil {
			return fmt.Errorf("append game for %q: %w", g.User, err)
		}
		imported++
	}

	fmt.Printf("imported %d games from %s\n", imported, in)
	return nil
}
