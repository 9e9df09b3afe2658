package filter

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type comment struct {
	ID     int
	Text   *string
	Author *string
}

func ptr(s string) *string {
	return &s
}

func comments() []comment {
	return []comment{
		{ID: 0, Text: ptr("This text contains null somewhere in the middle of a string"), Author: ptr("Dog")},
		{ID: 1, Text: ptr("null is here twice in the text ending by null"), Author: ptr("Cat")},
		{ID: 2, Text: ptr("Regular comment without n*ll"), Author: ptr("Mouse")},
		{ID: 100, Text: nil, Author: ptr("null")},
		{ID: 105, Text: ptr("The duck wrote this"), Author: ptr("Duck <5")},
	}
}

func field(get func(comment) *string) Accessor[comment] {
	return func(c comment) (string, bool) {
		if v := get(c); v != nil {
			return *v, true
		}
		return "", false
	}
}

var commentBinder = BinderFunc[comment](func(name string) (Accessor[comment], error) {
	switch name {
	case "Text":
		return field(func(c comment) *string { return c.Text }), nil
	case "Author":
		return field(func(c comment) *string { return c.Author }), nil
	}
	return nil, ErrUnresolvableProperty
})

func ids(entities []comment) []int {
	out := make([]int, 0, len(entities))
	for _, c := range entities {
		out = append(out, c.ID)
	}
	return out
}

func TestCommentFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/comments.yaml")
	require.NoError(t, err)

	var cases []struct {
		Filter   string `yaml:"filter"`
		Expected []int  `yaml:"expected"`
	}
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)

	for _, tc := range cases {
		t.Run(tc.Filter, func(t *testing.T) {
			match, err := Build[comment](tc.Filter, commentBinder)
			require.NoError(t, err)

			var got []comment
			for c := range Apply(comments(), match) {
				got = append(got, c)
			}
			if diff := cmp.Diff(tc.Expected, ids(got)); diff != "" {
				t.Errorf("filter %q (-want +got):\n%s", tc.Filter, diff)
			}
		})
	}
}
