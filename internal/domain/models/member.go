package models

import "time"

// Member is a milk supplier. History is append-only.
type Member struct {
	ID       string             `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	JoinDate time.Time          `bson:"join_date" json:"date_of_join"`
	History  []CollectionRecord `bson:"history" json:"history"`
}

// Archive is the portable export of all entry sessions and members.
type Archive struct {
	Entries []CollectionSession `json:"entries"`
	Members []Member            `json:"members"`
}
