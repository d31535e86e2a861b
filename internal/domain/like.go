package domain

// Like is a liker record embedded in reviews and comments.
type Like struct {
	UserID string
	Name   string
}

// HasLiked reports whether userID is among likes.
func HasLiked(likes []Like, userID string) bool {
	for _, l := range likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// ToggleLike removes liker from likes when already present, otherwise appends it.
// The returned bool is true when the liker ends up in the set.
func ToggleLike(likes []Like, liker Like) ([]Like, bool) {
	out := make([]Like, 0, len(likes)+1)
	removed := false
	for _, l := range likes {
		if l.UserID == liker.UserID {
			removed = true
			continue
		}
		out = append(out, l)
	}
	if removed {
		return out, false
	}
	return append(out, liker), true
}
