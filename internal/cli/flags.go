package cli

import (
	"fmt"
	"strings"

	"issuetrack/internal/format"
	"issuetrack/internal/model"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// enumValue is a pflag.Value that only accepts tokens its parser knows.
type enumValue[T ~string] struct {
	target *T
	parse  func(string) (T, error)
	typ    string
}

func (v *enumValue[T]) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v *enumValue[T]) Set(s string) error {
	x, err := v.parse(s)
	if err != nil {
		return err
	}
	*v.target = x
	return nil
}

func (v *enumValue[T]) Type() string { return v.typ }

// addEnumFlag registers an enum flag on fs with shell completion for its values.
func addEnumFlag[T ~string](cmd *cobra.Command, fs *pflag.FlagSet, target *T, name, usage string, parse func(string) (T, error), values []T) {
	fs.Var(&enumValue[T]{target: target, parse: parse, typ: name}, name, usage)
	_ = cmd.RegisterFlagCompletionFunc(name, completeTokens(values))
}

func parseFormat(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range format.Formats() {
		if s == f {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid format %q (want one of %s)", s, strings.Join(format.Formats(), ", "))
}

func statusUsage() string {
	return tokenUsage(model.Statuses())
}

func priorityUsage() string {
	return tokenUsage(model.Priorities())
}

func sortUsage() string {
	return tokenUsage(model.SortFields())
}

func tokenUsage[T ~string](xs []T) string {
	parts := make([]string, 0, len(xs))
	for _, x := range xs {
		parts = append(parts, string(x))
	}
	return strings.Join(parts, "|")
}
