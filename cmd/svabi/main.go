// Command svabi is a small demonstration CLI around the amd64 call
// arranger: given a C function prototype, it parses it with cdecl and
// prints the arranged downcall's calling sequence.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	env "github.com/xyproto/env/v2"

	"example.org/svabi/arch/amd64"
	"example.org/svabi/cdecl"
)

var log = logrus.New()

func main() {
	if env.Bool("SVABI_VERBOSE", false) {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("svabi failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "svabi",
		Short: "Arrange System V AMD64 calling sequences for C prototypes",
	}
	root.AddCommand(newDescribeCommand())
	return root
}

func newDescribeCommand() *cobra.Command {
	var funcName string

	cmd := &cobra.Command{
		Use:   "describe <source-file>",
		Short: "Parse a C prototype and print its arranged calling sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			sig, err := cdecl.ParseFunction(string(data), funcName)
			if err != nil {
				return fmt.Errorf("parsing function %q: %w", funcName, err)
			}
			log.WithField("function", funcName).Debug("parsed C prototype")

			handle, err := amd64.ArrangeDowncall(0, amd64.HostSignature{
				Arity:     len(sig.Params),
				HasReturn: sig.Return != nil,
			}, amd64.CDescriptor{
				Arguments: sig.Params,
				Return:    sig.Return,
				Variadic:  sig.Variadic,
			})
			if err != nil {
				return fmt.Errorf("arranging call for %q: %w", funcName, err)
			}

			fmt.Print(handle.Describe())
			return nil
		},
	}
	cmd.Flags().StringVar(&funcName, "func", "", "name of the function to arrange (required)")
	cmd.MarkFlagRequired("func")

	return cmd
}
