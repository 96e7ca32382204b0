package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/schemafield/dialect/sqlschema"
	"github.com/syssam/schemafield/schema/index"
)

func TestIndexFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *index.Descriptor
		validate func(t *testing.T, desc *index.Descriptor)
	}{
		{
			name: "single_field",
			build: func() *index.Descriptor {
				return index.Fields("name").Descriptor()
			},
			validate: func(t *testing.T, desc *index.Descriptor) {
				assert.Equal(t, []string{"name"}, desc.Fields)
				assert.False(t, desc.Unique)
				assert.Empty(t, desc.StorageKey)
				assert.Nil(t, desc.Annotations)
				assert.Equal(t, "users_name", desc.Name("users"))
			},
		},
		{
			name: "composite_unique_index",
			build: func() *index.Descriptor {
				return index.Fields("first", "last").Unique().Descriptor()
			},
			validate: func(t *testing.T, desc *index.Descriptor) {
				assert.Equal(t, []string{"first", "last"}, desc.Fields)
				assert.True(t, desc.Unique)
				assert.Equal(t, "users_first_last_key", desc.Name("users"))
			},
		},
		{
			name: "unique_with_storage_key",
			build: func() *index.Descriptor {
				return index.Fields("email").
					Unique().
					StorageKey("idx_unique_email").
					Annotations(sqlschema.Comment("lookup")).
					Descriptor()
			},
			validate: func(t *testing.T, desc *index.Descriptor) {
				assert.True(t, desc.Unique)
				assert.Equal(t, "idx_unique_email", desc.Name("users"))
				assert.Len(t, desc.Annotations, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, tt.build())
		})
	}
}

func TestIndexImmutability(t *testing.T) {
	b := index.Fields("a")
	d1 := b.Descriptor()
	d1.Fields[0] = "changed"
	d2 := b.Unique().Descriptor()
	assert.Equal(t, []string{"a"}, d2.Fields)
	assert.False(t, d1.Unique)
	assert.True(t, d2.Unique)
}
