package protocol

import (
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/sieve/constants"
	"github.com/datazip-inc/sieve/filter"
	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils/logger"
)

// FilterSpec documents the filter language for tools driving the CLI.
type FilterSpec struct {
	Operators       []OperatorSpec `json:"operators"`
	ReservedChars   string         `json:"reserved_chars"`
	NullToken       string         `json:"null_token"`
	CaseInsensitive string         `json:"case_insensitive_mark"`
	Sources         []string       `json:"sources"`
}

type OperatorSpec struct {
	Token   string `json:"token"`
	Kind    string `json:"kind"`
	Negated bool   `json:"negated"`
}

// specCmd represents the spec command
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "print the operator table and reserved characters",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runSpec(stdout)
	},
}

func runSpec(w io.Writer) error {
	spec := FilterSpec{
		ReservedChars:   constants.ReservedChars,
		NullToken:       constants.NullToken,
		CaseInsensitive: string(constants.CaseInsensitiveMark),
	}
	for _, op := range filter.Operators() {
		spec.Operators = append(spec.Operators, OperatorSpec{
			Token:   op.Token,
			Kind:    op.Kind.String(),
			Negated: op.Negated,
		})
	}
	for sourceType := range source.RegisteredSources {
		spec.Sources = append(spec.Sources, string(sourceType))
	}
	slices.Sort(spec.Sources)

	return logger.Message(w, types.Message{Type: types.SpecMessage, Spec: spec})
}
