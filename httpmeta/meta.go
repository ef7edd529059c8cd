// Package httpmeta serves published entity descriptors read-only over HTTP.
package httpmeta

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/docmap"
	"github.com/reoring/docmap/jsonschema"
)

type entityListItem struct {
	Entity     string `json:"entity"`
	Collection string `json:"collection"`
	Members    int    `json:"members"`
	ID         string `json:"id,omitempty"` // member mapped to _id
}

// Register mounts the metadata routes on r:
//
//	GET /entities
//	GET /entities/:collection
//	GET /entities/:collection/schema
func Register(r gin.IRouter, reg *docmap.Registry) {
	r.GET("/entities", ListHandler(reg))
	r.GET("/entities/:collection", EntityHandler(reg))
	r.GET("/entities/:collection/schema", SchemaHandler(reg))
}

// ListHandler lists every registered entity, sorted by Go type name.
func ListHandler(reg *docmap.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		types := reg.Types()
		out := make([]entityListItem, 0, len(types))
		for _, t := range types {
			e, ok := reg.Get(t, false)
			if !ok {
				continue
			}
			item := entityListItem{Entity: t.String(), Collection: e.Collection(), Members: e.Len()}
			if id, ok := e.ID(); ok {
				item.ID = id.MemberName
			}
			out = append(out, item)
		}
		c.JSON(http.StatusOK, out)
	}
}

// EntityHandler renders one descriptor looked up by collection name.
func EntityHandler(reg *docmap.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, ok := reg.Lookup(c.Param("collection"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// SchemaHandler renders the JSON Schema of one descriptor.
func SchemaHandler(reg *docmap.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, ok := reg.Lookup(c.Param("collection"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
			return
		}
		c.JSON(http.StatusOK, jsonschema.FromEntity(e))
	}
}
