package services

import (
	"sort"
	"strconv"
	"strings"
)

// roomLess orders "101" < "102" < "110" < "A-1". Rooms with a numeric
// prefix sort by that number first.
func roomLess(a, b string) bool {
	na, oka := roomNumber(a)
	nb, okb := roomNumber(b)
	switch {
	case oka && okb && na != nb:
		return na < nb
	case oka != okb:
		return oka
	}
	return a < b
}

func roomNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

func sortRooms(rooms []string) {
	sort.SliceStable(rooms, func(i, j int) bool { return roomLess(rooms[i], rooms[j]) })
}

// groupByRoom buckets items by room and returns the buckets in room order.
func groupByRoom[T any](items []T, room func(T) string) []RoomGroup[T] {
	idx := map[string]int{}
	var out []RoomGroup[T]
	for _, it := range items {
		r := room(it)
		i, ok := idx[r]
		if !ok {
			i = len(out)
			idx[r] = i
			out = append(out, RoomGroup[T]{Room: r})
		}
		out[i].Items = append(out[i].Items, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return roomLess(out[i].Room, out[j].Room) })
	return out
}

type RoomGroup[T any] struct {
	Room  string `json:"room"`
	Items []T    `json:"items"`
}
