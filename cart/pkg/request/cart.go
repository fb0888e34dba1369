package request

type AddItem struct {
	ProductID int64 `validate:"required,gt=0"  json:"productId"`
	Quantity  int   `validate:"required,gte=1" json:"quantity"`
}

type UpdateQuantity struct {
	Quantity int `json:"quantity"`
}
