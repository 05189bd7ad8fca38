// Command ocmesh parses, dumps and meshes textual CSG scene
// descriptions.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yiyijiang/ocmesh/pkg/csg"
	"github.com/yiyijiang/ocmesh/pkg/lang"
	"github.com/yiyijiang/ocmesh/pkg/tessellate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ocmesh",
		Short:        "CSG scene toolkit: check, dump and mesh signed distance scenes",
		SilenceUsage: true,
	}
	root.AddCommand(newCheckCmd(), newDumpCmd(), newMeshCmd())
	return root
}

// loadScene parses a scene file, folding recoverable parse errors
// into a single error listing every message.
func loadScene(path string) (*csg.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := lang.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !res.Ok() {
		var sb strings.Builder
		for i, e := range res.Errors {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%s: %s", path, e.Error())
		}
		return nil, errors.New(sb.String())
	}
	return res.Scene, nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Parse a scene file and report whether it is valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := loadScene(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: ok, %d toplevel(s), %d object(s)\n",
				args[0], scene.Size(), scene.NumObjects())
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Parse a scene file and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := loadScene(args[0])
			if err != nil {
				return err
			}
			return scene.Dump(os.Stdout)
		},
	}
}

func newMeshCmd() *cobra.Command {
	var outDir string
	var cells int

	cmd := &cobra.Command{
		Use:   "mesh FILE",
		Short: "Mesh every toplevel of a scene file to binary STL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := loadScene(args[0])
			if err != nil {
				return err
			}
			if scene.Size() == 0 {
				return fmt.Errorf("%s: scene has no toplevel shapes", args[0])
			}

			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			for i, m := range tessellate.Tessellate(scene, cells) {
				name := fmt.Sprintf("%s_%d_%s.stl", base, i, sanitize(m.Name))
				path := filepath.Join(outDir, name)
				if err := writeMesh(path, m); err != nil {
					return err
				}
				fmt.Printf("%s: %d triangles\n", path, m.NumTriangles())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory for STL files")
	cmd.Flags().IntVar(&cells, "cells", tessellate.DefaultCells, "marching cubes resolution")
	return cmd
}

func writeMesh(path string, m *tessellate.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tessellate.WriteSTL(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// sanitize turns a material tag into a filename fragment.
func sanitize(s string) string {
	if s == "" {
		return "untitled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
