package resolve

// Result is the outcome of one resolution call. Exactly one of the three
// concrete variants is returned; the sealed marker method keeps the set
// closed so callers must handle every case.
type Result interface {
	isResult()
}

// Direct means "fetch this URL to get the final bytes". It covers both the
// tunnel and redirect responses of the resolution service.
type Direct struct {
	MediaURL string
	Filename string
}

// ItemKind discriminates picker entries.
type ItemKind string

const (
	ItemVideo ItemKind = "video"
	ItemPhoto ItemKind = "photo"
)

// PickerItem is one candidate media entry from a multi-item post.
type PickerItem struct {
	Kind     ItemKind
	MediaURL string
	ThumbURL string
}

// Picker offers multiple candidate media items for the caller to choose from.
type Picker struct {
	Items []PickerItem
}

// FirstVideo returns the first video-kind item, skipping photos.
func (p Picker) FirstVideo() (PickerItem, bool) {
	for _, item := range p.Items {
		if item.Kind == ItemVideo {
			return item, true
		}
	}
	return PickerItem{}, false
}

// Failure reports why the service could not resolve the URL. Transport and
// protocol errors are folded into this variant with code "transport_error".
type Failure struct {
	Code           string
	ServiceContext string
}

func (Direct) isResult()  {}
func (Picker) isResult()  {}
func (Failure) isResult() {}
