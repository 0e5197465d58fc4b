package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type (
	// User is a registered chat participant and the key exchange parameters
	// peers must use when opening a session with them.
	User struct {
		ID   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
		Name string             `bson:"name" json:"name"`
		G    int                `bson:"g" json:"g"`
		N    int                `bson:"n" json:"n"`
	}
)

func (u *User) Params() Params {
	return Params{G: u.G, N: u.N}
}
