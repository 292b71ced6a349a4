// compileinfoprint is imported by the cytoheat tools for the side effect of
// printing their build banner to os.Stderr before anything else is logged.
package compileinfoprint

import (
	"os"

	"github.com/carbocation/cytoheat/compileinfo"
)

func init() {
	compileinfo.Fprint(os.Stderr)
}
