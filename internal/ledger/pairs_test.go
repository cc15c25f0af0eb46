package ledger

import (
	"reflect"
	"testing"
)

func TestPairSides(t *testing.T) {
	tests := []struct {
		name      string
		newUser   string
		others    []string
		wantLeft  []string
		wantRight []string
	}{
		{
			name:    "no existing members",
			newUser: "u1",
			others:  nil,
		},
		{
			name:      "one existing member",
			newUser:   "new",
			others:    []string{"a"},
			wantLeft:  []string{"a", "new"},
			wantRight: []string{"new", "a"},
		},
		{
			name:      "two existing members",
			newUser:   "new",
			others:    []string{"a", "b"},
			wantLeft:  []string{"a", "b", "new", "new"},
			wantRight: []string{"new", "new", "a", "b"},
		},
		{
			name:      "three existing members",
			newUser:   "d",
			others:    []string{"a", "b", "c"},
			wantLeft:  []string{"a", "b", "c", "d", "d", "d"},
			wantRight: []string{"d", "d", "d", "a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := pairSides(tt.newUser, tt.others)
			if !reflect.DeepEqual(left, tt.wantLeft) {
				t.Errorf("left = %v, want %v", left, tt.wantLeft)
			}
			if !reflect.DeepEqual(right, tt.wantRight) {
				t.Errorf("right = %v, want %v", right, tt.wantRight)
			}
			if len(left) != len(right) {
				t.Errorf("array lengths differ: %d vs %d", len(left), len(right))
			}

			// Position-wise, the arrays must enumerate each directed pair
			// involving the new user exactly once.
			seen := make(map[[2]string]bool)
			for i := range left {
				pair := [2]string{left[i], right[i]}
				if seen[pair] {
					t.Errorf("duplicate pair %v", pair)
				}
				seen[pair] = true
				if left[i] != tt.newUser && right[i] != tt.newUser {
					t.Errorf("pair %v does not involve the new user", pair)
				}
				if left[i] == right[i] {
					t.Errorf("self pair %v", pair)
				}
			}
			if want := 2 * len(tt.others); len(seen) != want {
				t.Errorf("got %d distinct pairs, want %d", len(seen), want)
			}
		})
	}
}
