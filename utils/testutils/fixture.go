package testutils

// Comment is one row of the fixture every source integration test loads.
type Comment struct {
	ID     int
	Text   *string
	Author string
}

func text(s string) *string {
	return &s
}

// Comments returns the fixture rows ordered by ID. Comment 100 has no text
// and an author literally named "null".
func Comments() []Comment {
	return []Comment{
		{ID: 0, Text: text("This text contains null somewhere in the middle of a string"), Author: "Dog"},
		{ID: 1, Text: text("null is here twice in the text ending by null"), Author: "Cat"},
		{ID: 2, Text: text("Regular comment without n*ll"), Author: "Mouse"},
		{ID: 100, Text: nil, Author: "null"},
		{ID: 105, Text: text("The duck wrote this"), Author: "Duck <5"},
	}
}

// FixtureCases maps filters to the fixture IDs they select.
var FixtureCases = []struct {
	Filter   string
	Expected []string
}{
	{"text==null", []string{"100"}},
	{"text!=null", []string{"0", "1", "2", "105"}},
	{"text|author@=*null", []string{"0", "1", "100"}},
	{`author==\null`, []string{"100"}},
	{"text!_-=null", []string{"0", "2", "105"}},
}
