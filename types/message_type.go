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

package types

type MessageType string

const (
	LogMessage         MessageType = "LOG"
	FilterCheckMessage MessageType = "FILTER_CHECK"
	SpecMessage        MessageType = "SPEC"
	StatsMessage       MessageType = "STATS"
)

type CheckStatus string

const (
	CheckSucceed CheckStatus = "SUCCEEDED"
	CheckFailed  CheckStatus = "FAILED"
)

// Message is one JSON line written to stdout by the CLI.
type Message struct {
	Type        MessageType  `json:"type"`
	FilterCheck *FilterCheck `json:"filterCheck,omitempty"`
	Spec        any          `json:"spec,omitempty"`
	Stats       *Stats       `json:"stats,omitempty"`
}

type FilterCheck struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message,omitempty"`
	Terms   []TermInfo  `json:"terms,omitempty"`
}

// TermInfo describes a parsed filter term.
type TermInfo struct {
	Canonical       string   `json:"canonical"`
	Names           []string `json:"names"`
	Operator        string   `json:"operator"`
	Kind            string   `json:"kind"`
	Negated         bool     `json:"negated"`
	CaseInsensitive bool     `json:"case_insensitive"`
	Values          []string `json:"values"`
}

type Stats struct {
	Read    int64 `json:"read"`
	Matched int64 `json:"matched"`
}
