package history

// Kind enumerates the command variants.
type Kind int

const (
	KindPosition Kind = iota
	KindResize
	KindAdd
	KindDelete
	KindIndex
	KindData
	KindLayout
	KindFreelineAdd
	KindFreelineUpdate
	KindFreelineErase
	KindPageAdd
	KindPageRemove
	KindPageIndex
	KindTransaction
	KindEditor
)

var kindNames = [...]string{
	KindPosition:       "position",
	KindResize:         "resize",
	KindAdd:            "add",
	KindDelete:         "delete",
	KindIndex:          "index",
	KindData:           "data",
	KindLayout:         "layout",
	KindFreelineAdd:    "freeline-add",
	KindFreelineUpdate: "freeline-update",
	KindFreelineErase:  "freeline-erase",
	KindPageAdd:        "page-add",
	KindPageRemove:     "page-remove",
	KindPageIndex:      "page-index",
	KindTransaction:    "transaction",
	KindEditor:         "editor",
}

// String returns the kind's name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
