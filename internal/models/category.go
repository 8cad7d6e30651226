package models

import (
	"strings"
)

// DefaultCategories is the category set used when no category file is configured.
var DefaultCategories = []string{
	"Transportation",
	"Flights",
	"Stays",
	"Home Rent & Utilities",
	"Furniture",
	"Electronics",
	"Groceries",
	"Health",
	"Outside Food",
	"Money sent to family",
	"Investments",
	"Entertainment",
	"Shopping",
	"Petrol",
	"Credit Card Payment",
	"Loan repayment",
	CategoryOther,
}

// CategorySet is a closed set of category names. It always contains Other.
type CategorySet struct {
	names []string
	index map[string]string
}

// NewCategorySet builds a set from names, dropping blanks and duplicates
// (case-insensitive) and appending Other when missing.
func NewCategorySet(names []string) CategorySet {
	set := CategorySet{index: make(map[string]string, len(names)+1)}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := set.index[key]; ok {
			continue
		}
		set.index[key] = n
		set.names = append(set.names, n)
	}
	if _, ok := set.index[strings.ToLower(CategoryOther)]; !ok {
		set.index[strings.ToLower(CategoryOther)] = CategoryOther
		set.names = append(set.names, CategoryOther)
	}
	return set
}

// DefaultCategorySet returns the built-in category set.
func DefaultCategorySet() CategorySet {
	return NewCategorySet(DefaultCategories)
}

// Names returns the categories in their configured order.
func (s CategorySet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of categories.
func (s CategorySet) Len() int {
	return len(s.names)
}

// Contains reports whether name is in the set, ignoring case.
func (s CategorySet) Contains(name string) bool {
	_, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Normalize returns the canonical spelling of name and true, or Other and
// false when name is not in the set.
func (s CategorySet) Normalize(name string) (string, bool) {
	if canonical, ok := s.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canonical, true
	}
	return CategoryOther, false
}
