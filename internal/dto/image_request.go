package dto

type ImageRequest struct {
	URL       string `json:"url"`
	Priority  *int   `json:"priority"`
	ProductID int64  `json:"productId"`
}

// ImageUpdate carries a partial image update; nil fields are left as stored.
type ImageUpdate struct {
	URL       *string `json:"url"`
	Priority  *int    `json:"priority"`
	ProductID *int64  `json:"productId"`
}

func (u ImageUpdate) IsEmpty() bool {
	return u.URL == nil && u.Priority == nil && u.ProductID == nil
}
