package docmap_test

import "github.com/oklog/ulid/v2"

type Customer struct {
	Id   int
	Name string
}

type Address struct {
	City string
}

type Order struct {
	ID       string     `bson:"_id"`
	Number   string     `docmap:"number,unique"`
	Total    float64    `json:"total,omitempty"`
	Customer *Customer  `docmap:",ref"`
	Lines    []*Product `docmap:"lines,ref=catalog"`
	Home     Address
	Work     *Address
	Secret   string `json:"-"`
	internal int
}

type Product struct {
	ProductId int64
	Sku       string `docmap:",unique"`
}

type Base struct {
	Created string
}

type Event struct {
	Base
	Key ulid.ULID `docmap:",id"`
	Tag string
}

type NoID struct {
	Title string
}
