// Command kforge compiles model specifications into packed runtime
// models and reports their layout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/kforge/internal/config"
	"github.com/Faultbox/kforge/internal/logger"
	"github.com/Faultbox/kforge/pkg/compile"
	"github.com/Faultbox/kforge/pkg/mjcf"
	"github.com/Faultbox/kforge/pkg/model"
)

var (
	cfgPath  string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "kforge",
		Short: "Model compiler for rigid and soft body simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			return logger.Init(level, cfg.Logging.LogFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "tool configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(compileCmd(), infoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadAndCompile parses a YAML model and runs the compiler.
func loadAndCompile(path string) (*model.Model, *compile.Compiler, error) {
	s, err := mjcf.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	c := compile.New(s, compile.WithLogger(logger.Log))
	m, err := c.Compile()
	if err != nil {
		return nil, nil, err
	}
	return m, c, nil
}

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <model.yaml>",
		Short: "Compile a model and report success",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, c, err := loadAndCompile(args[0])
			if err != nil {
				return err
			}
			for _, w := range c.Warnings() {
				logger.Log.Warn(w.Message)
			}
			logger.Log.Info("compiled",
				zap.String("model", args[0]),
				zap.Int32("nq", m.Nq),
				zap.Int32("nv", m.Nv),
				zap.Int32("nbody", m.Nbody),
			)
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <model.yaml>",
		Short: "Compile a model and print its sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadAndCompile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nq      %d\n", m.Nq)
			fmt.Fprintf(out, "nv      %d\n", m.Nv)
			fmt.Fprintf(out, "nu      %d\n", m.Nu)
			fmt.Fprintf(out, "na      %d\n", m.Na)
			fmt.Fprintf(out, "nbody   %d\n", m.Nbody)
			fmt.Fprintf(out, "njnt    %d\n", m.Njnt)
			fmt.Fprintf(out, "ngeom   %d\n", m.Ngeom)
			fmt.Fprintf(out, "nsite   %d\n", m.Nsite)
			fmt.Fprintf(out, "nmesh   %d\n", m.Nmesh)
			fmt.Fprintf(out, "ntendon %d\n", m.Ntendon)
			fmt.Fprintf(out, "nM      %d\n", m.NM)
			fmt.Fprintf(out, "nD      %d\n", m.ND)
			fmt.Fprintf(out, "nB      %d\n", m.NB)
			fmt.Fprintf(out, "ntree   %d\n", m.Ntree)
			fmt.Fprintf(out, "arena   %d bytes\n", m.Narena)
			return nil
		},
	}
}
