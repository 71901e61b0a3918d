// compileinfoprint is imported for its side effect: the build information of
// the binary is written to os.Stderr before main runs.
package compileinfoprint

import "github.com/carbocation/geocounts/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
