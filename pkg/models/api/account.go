package api

type Account struct {
	Name string `json:"name"`
}

type Error struct {
	Error string `json:"error"`
}
