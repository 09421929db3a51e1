package listcontroller

import (
	"reflect"
	"testing"

	"github.com/HerbHall/adminlist/internal/dataprovider"
)

func TestSelections(t *testing.T) {
	s := NewSelections()

	s.Select("posts", []dataprovider.Identifier{"1", "2", "1"})
	if got := s.Selected("posts"); !reflect.DeepEqual(got, []dataprovider.Identifier{"1", "2"}) {
		t.Errorf("after Select = %v, want [1 2]", got)
	}

	s.Toggle("posts", "3")
	s.Toggle("posts", "1")
	if got := s.Selected("posts"); !reflect.DeepEqual(got, []dataprovider.Identifier{"2", "3"}) {
		t.Errorf("after Toggle = %v, want [2 3]", got)
	}

	if got := s.Selected("users"); len(got) != 0 {
		t.Errorf("users selection = %v, want empty", got)
	}

	got := s.Selected("posts")
	got[0] = "mutated"
	if s.Selected("posts")[0] != "2" {
		t.Error("Selected must return a copy")
	}

	s.Clear("posts")
	if got := s.Selected("posts"); len(got) != 0 {
		t.Errorf("after Clear = %v, want empty", got)
	}
}
