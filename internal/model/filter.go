package model

// PostFilter narrows a post listing.
type PostFilter struct {
	Domain PostDomain
	Status PostStatus // empty = any
	Limit  int        // 0 = no limit
}
