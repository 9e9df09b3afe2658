/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/sieve/filter"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils/logger"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "parse a filter expression and report its terms",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if filterExpr == "" {
			return fmt.Errorf("no filter provided, use --filter")
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return runCheck(stdout, filterExpr)
	},
}

// runCheck writes a FILTER_CHECK message for expr. The error is returned as
// well so the process exits non-zero on a malformed filter.
func runCheck(w io.Writer, expr string) error {
	terms, err := filter.Parse(expr)

	message := types.Message{
		Type: types.FilterCheckMessage,
		FilterCheck: &types.FilterCheck{
			Status: types.CheckSucceed,
		},
	}
	if err != nil {
		message.FilterCheck.Status = types.CheckFailed
		message.FilterCheck.Message = err.Error()
	} else {
		for _, term := range terms {
			message.FilterCheck.Terms = append(message.FilterCheck.Terms, termInfo(term))
		}
	}

	if werr := logger.Message(w, message); werr != nil {
		return werr
	}
	return err
}

func termInfo(term filter.Term) types.TermInfo {
	values := make([]string, len(term.Values))
	for i, value := range term.Values {
		values[i] = value.String()
	}
	return types.TermInfo{
		Canonical:       term.String(),
		Names:           term.Names,
		Operator:        term.Operator.Token,
		Kind:            term.Operator.Kind.String(),
		Negated:         term.Negated(),
		CaseInsensitive: term.CaseInsensitive,
		Values:          values,
	}
}
