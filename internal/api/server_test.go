package api

import (
	"testing"

	"github.com/JustinTDCT/organizer/internal/config"
)

func TestWithinBrowseRootsAllowsNestedPaths(t *testing.T) {
	s := &Server{config: &config.Config{BrowseRoots: []string{"/mnt", "/media"}}}

	cases := []struct {
		path string
		want bool
	}{
		{"/mnt", true},
		{"/mnt/incoming", true},
		{"/media/movies/Inception (2010)", true},
		{"/home/user/secrets", false},
		{"/mnt-archive/evil", false},
	}
	for _, c := range cases {
		if got := s.withinBrowseRoots(c.path); got != c.want {
			t.Errorf("withinBrowseRoots(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestWithinBrowseRootsWildcardRoot(t *testing.T) {
	s := &Server{config: &config.Config{BrowseRoots: []string{"/"}}}
	if !s.withinBrowseRoots("/anything/at/all") {
		t.Error("expected wildcard root \"/\" to allow any path")
	}
}
