package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/hooks"
	"github.com/vango-dev/storectx/pkg/reactive"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run two components sharing one store",
		Long: `Mount a provider with two components reading "key" (the second with the
default "defaultB"), then batch-set, set and remove the key, printing what
each component renders.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

// demoState is what the demo components expose to the driver.
type demoState struct {
	renderedA, renderedB int
	setStores            func(map[string]any) error
	setA                 hooks.SetFunc
	delA, delB           hooks.RemoveFunc
}

func runDemo(w io.Writer) error {
	for _, v := range []any{"", "value"} {
		fmt.Fprintf(w, "IsEmpty(%q) => %v\n", v, hooks.IsEmpty(v))
	}

	st := &demoState{}

	compA := reactive.Func("CompA", func(reactive.Props) []reactive.Element {
		st.renderedA++
		var value any
		value, st.setA, st.delA = hooks.UseStore("key", nil, nil)
		fmt.Fprintf(w, "Component A value => %v\n", value)
		return nil
	})
	compB := reactive.Func("CompB", func(reactive.Props) []reactive.Element {
		st.renderedB++
		var value any
		value, _, st.delB = hooks.UseStore("key", "defaultB", nil)
		fmt.Fprintf(w, "Component B value => %v\n", value)
		return nil
	})
	app := hooks.WithBus(broadcast.New(), hooks.WithStore(reactive.Func("App", func(reactive.Props) []reactive.Element {
		st.setStores = hooks.UseStores(nil).SetStores
		return []reactive.Element{reactive.El(compA, nil), reactive.El(compB, nil)}
	})))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	steps := []func() error{
		func() error { return st.setStores(map[string]any{"key": "default"}) },
		func() error { return st.setA("set-from-A") },
		func() error { return st.setA("set-from-B") },
		func() error { return st.delA() },
		func() error { return st.delB() },
	}
	for _, step := range steps {
		var err error
		rt.Act(func() { err = step() })
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Renders: A=%d B=%d\n", st.renderedA, st.renderedB)
	return nil
}
