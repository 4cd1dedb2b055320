package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neumenon/adt/snapshot"
)

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print declared types and unions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.loadDecl()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), set.Describe())
			return err
		},
	}
}

func (c *cli) checkCmd() *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "check DOC...",
		Short: "Decode and validate JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.loadDecl()
			if err != nil {
				return err
			}
			docs, err := readDocs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range set.CheckAll(ctx, docs, jobs) {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "%s: FAIL %v\n", args[r.Index], r.Err)
					continue
				}
				fmt.Fprintf(out, "%s: ok %s\n", args[r.Index], r.Value)
			}
			c.logger.Debug("check finished", zap.Int("documents", len(docs)), zap.Int("failed", failed))
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(docs))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "Documents to check concurrently (0 for no limit)")
	return cmd
}

func (c *cli) coverCmd() *cobra.Command {
	var union string
	cmd := &cobra.Command{
		Use:   "cover TAG...",
		Short: "Check that handlers for TAGs exhaust a union",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.loadDecl()
			if err != nil {
				return err
			}
			if err := set.Coverage(union, args); err != nil {
				return fmt.Errorf("%s: %w", union, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: exhaustive\n", union)
			return nil
		},
	}
	cmd.Flags().StringVarP(&union, "union", "u", "", "Union name (required)")
	_ = cmd.MarkFlagRequired("union")
	return cmd
}

func (c *cli) packCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "pack DOC...",
		Short: "Write validated documents to a snapshot file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.loadDecl()
			if err != nil {
				return err
			}
			docs, err := readDocs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()

			results := set.CheckAll(ctx, docs, 0)
			var errs []error
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", args[r.Index], r.Err))
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create snapshot: %w", err)
			}
			defer f.Close()

			w, err := snapshot.NewWriter(f, snapshot.WithLogger(c.logger))
			if err != nil {
				return err
			}
			for _, r := range results {
				if err := w.Write(r.Value); err != nil {
					return err
				}
			}
			if err := w.Close(); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close snapshot: %w", err)
			}

			c.logger.Info("packed snapshot", zap.String("path", outPath), zap.Int("values", len(results)))
			fmt.Fprintf(cmd.OutOrStdout(), "packed %d values into %s\n", len(results), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Snapshot file to write (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (c *cli) unpackCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "unpack SNAP",
		Short: "Print the values in a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.loadDecl()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()

			r, err := snapshot.NewReader(f, snapshot.WithRegistry(set.Registry()), snapshot.WithLogger(c.logger))
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			for {
				v, err := r.Next()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if !asJSON {
					fmt.Fprintln(out, v)
					continue
				}
				data, err := set.Encode(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n", data)
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print values as JSON documents")
	return cmd
}

// readDocs reads each named file, or stdin for "-". Stdin is read once.
func readDocs(stdin io.Reader, names []string) ([][]byte, error) {
	docs := make([][]byte, len(names))
	var fromStdin []byte
	readStdin := false
	for i, name := range names {
		if name == "-" {
			if !readStdin {
				data, err := io.ReadAll(stdin)
				if err != nil {
					return nil, fmt.Errorf("read stdin: %w", err)
				}
				fromStdin, readStdin = data, true
			}
			docs[i] = fromStdin
			continue
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		docs[i] = data
	}
	return docs, nil
}
