package domain

type Category string

const (
	CategoryWeb   Category = "web"
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
)

// Categories lists all categories in display order.
var Categories = []Category{CategoryWeb, CategoryImage, CategoryVideo}

func (c Category) IsValid() bool {
	switch c {
	case CategoryWeb, CategoryImage, CategoryVideo:
		return true
	}
	return false
}

// EndpointPath - сегмент пути в upstream API (у видео он исторически "vclip")
func (c Category) EndpointPath() string {
	switch c {
	case CategoryWeb:
		return "web"
	case CategoryImage:
		return "image"
	case CategoryVideo:
		return "vclip"
	}
	return ""
}

func (c Category) String() string {
	return string(c)
}
