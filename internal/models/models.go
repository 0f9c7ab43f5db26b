package models

// All returns a zero value of every persisted model, in migration order.
func All() []any {
	return []any{&Role{}, &User{}, &Project{}, &Task{}, &Comment{}, &File{}}
}
