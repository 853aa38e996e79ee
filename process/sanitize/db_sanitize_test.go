package sanitize

import (
	"reflect"
	"testing"
)

func TestSelectTables(t *testing.T) {
	got := selectTables(" users, ,badge_records,drop table x;,_tmp1 ")
	if want := []string{"users", "badge_records", "_tmp1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := selectTables(defaultTables); len(got) != 5 {
		t.Fatalf("default tables: %v", got)
	}
}

func TestTruncateStatement(t *testing.T) {
	got := truncateStatement([]string{"users", "roles"})
	want := `TRUNCATE TABLE "users", "roles" RESTART IDENTITY CASCADE`
	if got != want {
		t.Fatalf("got %s", got)
	}
}
