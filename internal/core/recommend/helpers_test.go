package recommend

import (
	"io"
	"strings"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func names(items []ScoredDish) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func dishNames(dishes []Dish) []string {
	out := make([]string, len(dishes))
	for i, d := range dishes {
		out[i] = d.Name
	}
	return out
}

func priced(d Dish, price float64) Dish {
	d.Price = &price
	return d
}
