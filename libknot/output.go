package libknot

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/2x3systems/goknot/goknot"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// writeResult writes the text of res to pathname (creating its directory) and returns a ResultWritten.
func writeResult(res goknot.Result, pathname string) (goknot.Result, error) {
	if dir := filepath.Dir(pathname); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return goknot.Result{}, errors.Wrapf(err, "output file %q", pathname)
		}
	}

	buf := strings.Builder{}
	res.WriteAsString(&buf, goknot.DefaultPrintOpts)
	buf.WriteByte('\n')

	if err := os.WriteFile(pathname, []byte(buf.String()), 0644); err != nil {
		return goknot.Result{}, errors.Wrapf(err, "output file %q", pathname)
	}
	klog.V(2).Infof("wrote %v result to %q", res.Kind, pathname)

	return goknot.Result{
		Kind: goknot.ResultWritten,
		Path: pathname,
	}, nil
}
