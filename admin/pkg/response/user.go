package response

type User struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	ID            int64  `json:"id"`
}
