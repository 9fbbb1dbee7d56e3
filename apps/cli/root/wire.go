package root

import (
	"github.com/carecrest/hospital-cms/apps/cli/cmd/auth"
	"github.com/carecrest/hospital-cms/apps/cli/cmd/db"
	"github.com/carecrest/hospital-cms/apps/cli/cmd/seed"
	"github.com/carecrest/hospital-cms/apps/cli/cmd/slugs"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(db.Command())
	Root().AddCommand(slugs.Command())
	Root().AddCommand(seed.Command())
}
