package set

// Item is an entry storeable in the set.
type Item interface {
	Key() string
	Value() interface{}
}

type item struct {
	key   string
	value interface{}
}

func (it item) Key() string {
	return it.key
}

func (it item) Value() interface{} {
	return it.value
}

// Itemize wraps an arbitrary value under key.
func Itemize(key string, value interface{}) Item {
	return item{key, value}
}

// StringItem is an Item whose key is its value.
type StringItem string

func (item StringItem) Key() string {
	return string(item)
}

func (item StringItem) Value() interface{} {
	return string(item)
}
