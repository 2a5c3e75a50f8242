package model

import "time"

// Profile holds one participant's demographic attributes as stored by the
// profile collaborator. Read-only to the report pipeline.
type Profile struct {
	UserID             string    `json:"userId" bson:"userId"`
	Name               string    `json:"name" bson:"name"`
	Age                int       `json:"age" bson:"age"`
	Gender             string    `json:"gender,omitempty" bson:"gender,omitempty"`
	Education          string    `json:"education,omitempty" bson:"education,omitempty"`
	Religion           string    `json:"religion,omitempty" bson:"religion,omitempty"`
	RelationshipStatus string    `json:"relationshipStatus,omitempty" bson:"relationshipStatus,omitempty"`
	Occupation         string    `json:"occupation,omitempty" bson:"occupation,omitempty"`
	CreatedAt          time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}
