package ledger

// pairSides builds the two parallel id arrays for initializing the balance
// rows between a new member and the members that preceded them.
//
// Read position-wise, (left[i], right[i]) enumerates every directed pair
// the new member participates in:
//
//	left:  [...others, newUser repeated len(others) times]
//	right: [newUser repeated len(others) times, ...others]
//
// so each existing member gets a row against the new user and vice versa.
func pairSides(newUser string, others []string) (left, right []string) {
	n := len(others)
	if n == 0 {
		return nil, nil
	}
	left = make([]string, 0, 2*n)
	right = make([]string, 0, 2*n)
	left = append(left, others...)
	for i := 0; i < n; i++ {
		left = append(left, newUser)
		right = append(right, newUser)
	}
	right = append(right, others...)
	return left, right
}
