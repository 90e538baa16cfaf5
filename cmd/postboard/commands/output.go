package commands

import (
	"fmt"

	"github.com/goliatone/go-print"
)

func (a *app) printJSON(v any) error {
	_, err := fmt.Fprintln(a.out, print.MaybePrettyJSON(v))
	return err
}
