package slugs

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/slugmigration"
)

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, slugmigration.RunReport{
		Kinds: []slugmigration.KindOutcome{
			{Summary: slugmigration.Summary{Kind: persistence.SlugKindCategories, Message: "migrated 2 categories", Updated: 2}},
			{Summary: slugmigration.Summary{Kind: persistence.SlugKindBlogs}, Error: "connection reset"},
		},
		Updated: 2,
		Failed:  1,
	})

	text := out.String()
	assert.Contains(t, text, "migrated 2 categories")
	assert.Contains(t, text, "error: connection reset")
	assert.Contains(t, text, "Updated 2 record(s); 1 kind(s) failed.")
}

func TestPrintSummary(t *testing.T) {
	id := uuid.MustParse("6f1c1b55-2a39-4d8b-9a4c-0d7f3b0b6e11")
	var out bytes.Buffer
	printSummary(&out, slugmigration.Summary{
		Kind:    persistence.SlugKindDoctors,
		Message: "migrated 1 doctors",
		Updated: 1,
		Results: []slugmigration.Result{{ID: id, Title: "Dr. Ana", Slug: "dr-ana"}},
	})

	assert.Equal(t, id.String()+"  Dr. Ana -> dr-ana\nmigrated 1 doctors\n", out.String())
}

func TestMigrateCommandFlags(t *testing.T) {
	cmd := migrateCommand()
	for _, name := range []string{"database-url", "log-level", "kind", "unique", "max-attempts"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
