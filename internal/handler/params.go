package handler

import (
	"net/url"
	"strconv"

	"github.com/listhub/listhub/internal/model"
)

// parsePage reads page_num and page_size. present is false when neither is
// set, in which case page holds the defaults. errs carries one message per
// invalid parameter.
func parsePage(q url.Values) (page model.Page, present bool, errs []string) {
	page = model.DefaultPage()

	if v, ok := lookup(q, "page_num"); ok {
		present = true
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, "invalid page_num")
		} else {
			page.Num = n
		}
	}
	if v, ok := lookup(q, "page_size"); ok {
		present = true
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, "invalid page_size")
		} else {
			page.Size = n
		}
	}
	return page, present, errs
}

func lookup(q url.Values, key string) (string, bool) {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
