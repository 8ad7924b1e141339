package overpass

import (
	"fmt"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
)

// Query returns the Overpass QL selecting every golf course node, way and
// relation inside the partition's ISO 3166-2 area, with centers and tags.
func Query(partition domain.Partition, timeout time.Duration) string {
	seconds := int(timeout / time.Second)
	if seconds <= 0 {
		seconds = int(DefaultTimeout / time.Second)
	}
	return fmt.Sprintf(`[out:json][timeout:%d];
area["ISO3166-2"="%s"]->.searchArea;
(
  node["leisure"="golf_course"](area.searchArea);
  way["leisure"="golf_course"](area.searchArea);
  relation["leisure"="golf_course"](area.searchArea);
);
out center tags;`, seconds, partition.ISO3166())
}
