package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/callcache"
)

func newStoreCmd(a *app) *cobra.Command {
	var asInt, asFloat bool
	cmd := &cobra.Command{
		Use:   "store <value>...",
		Short: "Store each value under a new key and print the keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asInt && asFloat {
				return fmt.Errorf("--int and --float are mutually exclusive")
			}
			vals := make([]callcache.Value, 0, len(args))
			for _, s := range args {
				v, err := parseValue(s, asInt, asFloat)
				if err != nil {
					return err
				}
				vals = append(vals, v)
			}

			ctx := cmd.Context()
			c, err := a.dial(ctx, false)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			for _, v := range vals {
				key, err := c.Store(ctx, v)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asInt, "int", false, "store values as integers")
	cmd.Flags().BoolVar(&asFloat, "float", false, "store values as floats")
	return cmd
}

func parseValue(s string, asInt, asFloat bool) (callcache.Value, error) {
	switch {
	case asInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return callcache.Value{}, fmt.Errorf("--int %q: %w", s, err)
		}
		return callcache.Int(i), nil
	case asFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return callcache.Value{}, fmt.Errorf("--float %q: %w", s, err)
		}
		return callcache.Float(f), nil
	default:
		return callcache.String(s), nil
	}
}

func newGetCmd(a *app) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.dial(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			var (
				out any
				ok  bool
			)
			switch as {
			case "str", "":
				out, ok, err = c.GetStr(ctx, args[0])
			case "int":
				out, ok, err = c.GetInt(ctx, args[0])
			case "float":
				out, ok, err = c.GetFloat(ctx, args[0])
			default:
				return fmt.Errorf("--as must be str, int or float, got %q", as)
			}
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "(nil)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "str", "decode as str, int or float")
	return cmd
}

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay [op]",
		Short: "Print the recorded history of op (default " + callcache.OpStore + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := callcache.OpStore
			if len(args) == 1 {
				op = args[0]
			}
			ctx := cmd.Context()
			c, err := a.dial(ctx, true)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			r, err := c.Replay(ctx, op)
			if err != nil {
				return err
			}
			_, err = r.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}
