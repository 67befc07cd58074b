package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Well known Directus field names.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldStatus      = "status"
	FieldDateCreated = "date_created"
	FieldDateUpdated = "date_updated"
	FieldBody        = "body"
)

// Status is the publication state of an item.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusArchived  Status = "archived"
)

// Item is one record of a collection. Fields are kept as returned by the CMS.
type Item map[string]interface{}

// Clone returns a shallow copy that can be rewritten without touching the original.
func (i Item) Clone() Item {
	c := make(Item, len(i))
	for k, v := range i {
		c[k] = v
	}
	return c
}

// ID renders the item identifier, or "" when missing.
func (i Item) ID() string {
	switch v := i[FieldID].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Title returns the title field and whether it is set.
func (i Item) Title() (string, bool) {
	t, ok := i[FieldTitle].(string)
	return t, ok
}

// Status returns the publication status. Collections without a status
// field are treated as published.
func (i Item) Status() Status {
	s, _ := i[FieldStatus].(string)
	if s == "" {
		return StatusPublished
	}
	return Status(strings.ToLower(s))
}

// DateCreated returns the raw date_created value.
func (i Item) DateCreated() string {
	d, _ := i[FieldDateCreated].(string)
	return d
}

// Body returns the main content, "" when absent.
func (i Item) Body() string {
	switch b := i[FieldBody].(type) {
	case nil:
		return ""
	case string:
		return b
	default:
		return fmt.Sprint(b)
	}
}
