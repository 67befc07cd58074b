package models

import "path/filepath"

// Collection is a content type exposed by the CMS.
type Collection struct {
	Name      string `json:"name"`
	Singleton bool   `json:"singleton"`
	System    bool   `json:"system"`
}

// ImportTarget is where an item ends up in the content tree.
type ImportTarget struct {
	Dir       string
	IndexName string // "index" or "_index"
}

const (
	IndexLeaf   = "index"
	IndexBranch = "_index"
)

// File returns the markdown file path of the target.
func (t ImportTarget) File() string {
	return filepath.Join(t.Dir, t.IndexName+".md")
}
