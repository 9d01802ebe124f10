package api

//Dictionary describes the entity types known to the store
type Dictionary interface {
	Exists(typ string) bool
	IsSortable(typ string, field string) bool
}
