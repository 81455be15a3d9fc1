package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storectx/internal/errors"
	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/store"
)

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the stored value of a key",
		Long: `Print the JSON text stored under key.

Examples:
  storectx get theme
  storectx get --session cart`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			raw, found, err := a.storage().GetItem(key)
			if err != nil {
				return errors.New(errors.CodeBackendRead).WithSubject(key).Wrap(err)
			}
			if !found {
				return errors.New(errors.CodeKeyNotFound).WithSubject(key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}

func setCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under a key",
		Long: `Store a JSON value under key. Writing the value already stored is a
no-op. Components bound to the same handle in this process are notified.

Examples:
  storectx set theme '"dark"'
  storectx set --session cart '{"items":[1,2]}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			var value any
			if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
				return errors.New(errors.CodeInvalidValue).WithSubject(args[1]).Wrap(err)
			}

			changed, err := store.SetItem(broadcast.Default(), a.storage(), key, value)
			if err != nil {
				return errors.New(errors.CodeBackendWrite).WithSubject(key).Wrap(err)
			}
			if changed {
				success(cmd.OutOrStdout(), "%s set", key)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s unchanged\n", key)
			}
			return nil
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"remove"},
		Short:   "Remove a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			removed, err := store.RemoveItem(broadcast.Default(), a.storage(), key)
			if err != nil {
				return errors.New(errors.CodeBackendWrite).WithSubject(key).Wrap(err)
			}
			if removed {
				success(cmd.OutOrStdout(), "%s removed", key)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s not stored\n", key)
			}
			return nil
		},
	}
}

func lsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored keys and values",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.storage()
			keys, err := persist.Keys(s)
			if stderrors.Is(err, persist.ErrNotListable) {
				return errors.New(errors.CodeNotListable).WithSubject(a.channel())
			}
			if err != nil {
				return errors.New(errors.CodeBackendRead).WithSubject(a.channel()).Wrap(err)
			}
			out := cmd.OutOrStdout()
			for _, key := range keys {
				raw, found, err := s.GetItem(key)
				if err != nil {
					return errors.New(errors.CodeBackendRead).WithSubject(key).Wrap(err)
				}
				if found {
					fmt.Fprintf(out, "%s\t%s\n", key, raw)
				}
			}
			return nil
		},
	}
}
