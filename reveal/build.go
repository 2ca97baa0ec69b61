package reveal

import (
	"fmt"
	"strings"

	"github.com/TFMV/neongraph/models"
)

// CentralID is the id of the department node.
const CentralID = "central"

// SplitDegree separates "Theatre BFA: Acting Track" into its base program
// and track name. Degrees without a colon have no track.
func SplitDegree(degree string) (base, track string) {
	parts := strings.Split(degree, ":")
	if len(parts) < 2 {
		return strings.TrimSpace(degree), ""
	}
	base = strings.TrimSpace(parts[0])
	track = strings.TrimSpace(parts[1])
	track = strings.TrimSpace(strings.Replace(track, " Track", "", 1))
	return base, track
}

// BuildGraph turns a department into the full node and link set. The
// central node is pinned at (cx, cy); degree tracks are collapsed onto one
// node per base program. Track nodes are not created here.
func BuildGraph(dept *models.Department, cx, cy float64) ([]*models.Node, []models.Link) {
	central := models.NewNode(CentralID, dept.Name, models.CategoryCentral)
	central.Pin(cx, cy)

	nodes := []*models.Node{central}
	var links []models.Link

	var order []string
	tracks := make(map[string][]string)
	for _, degree := range dept.Degrees {
		base, track := SplitDegree(degree)
		if _, seen := tracks[base]; !seen {
			order = append(order, base)
			tracks[base] = []string{}
		}
		if track != "" {
			tracks[base] = append(tracks[base], track)
		}
	}

	next := 0
	add := func(cat models.Category, name string) *models.Node {
		n := models.NewNode(fmt.Sprintf("%s-%d", cat, next), name, cat)
		next++
		nodes = append(nodes, n)
		links = append(links, models.Link{Source: CentralID, Target: n.ID, Category: cat})
		return n
	}

	for _, base := range order {
		n := add(models.CategoryDegree, base)
		if len(tracks[base]) > 0 {
			n.Tracks = tracks[base]
		}
	}
	for _, p := range dept.InternalPartners {
		add(models.CategoryInternal, p)
	}
	for _, p := range dept.ExternalPartners {
		add(models.CategoryExternal, p)
	}
	return nodes, links
}

// TrackID names the track node at index i under a degree node.
func TrackID(degreeID string, i int) string {
	return fmt.Sprintf("track-%s-%d", degreeID, i)
}
