package report

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"salesclass/pkg/model"
)

// graphFormat maps a file extension onto a graphviz output format.
func graphFormat(filename string) (graphviz.Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".svg":
		return graphviz.SVG, nil
	case ".png":
		return graphviz.PNG, nil
	case ".jpg", ".jpeg":
		return graphviz.JPG, nil
	case ".dot", ".gv":
		return graphviz.XDOT, nil
	}
	return "", fmt.Errorf("report: unsupported graph format %q", filepath.Ext(filename))
}

// GraphOption configures RenderTree.
type GraphOption func(*treeDrawer)

// WithThresholdUnscale maps each split threshold through f before it is
// printed, so a tree trained on scaled features shows original units.
func WithThresholdUnscale(f func(feature int, v float64) float64) GraphOption {
	return func(d *treeDrawer) { d.unscale = f }
}

// RenderTree draws a fitted decision tree whose class labels index
// classNames. Internal nodes show their split and every node shows its
// sample and class counts.
func RenderTree(tree *model.DecisionTreeClassifier, featureNames, classNames []string, filename string, opts ...GraphOption) error {
	root := tree.Root()
	if root == nil {
		return model.ErrNotFitted
	}
	format, err := graphFormat(filename)
	if err != nil {
		return err
	}

	g := graphviz.New()
	defer g.Close()
	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("report: new graph: %w", err)
	}
	defer graph.Close()

	d := treeDrawer{graph: graph, features: featureNames, classes: classNames}
	for _, o := range opts {
		o(&d)
	}
	if _, err := d.draw(root); err != nil {
		return err
	}
	if err := g.RenderFilename(graph, format, filename); err != nil {
		return fmt.Errorf("report: render %s: %w", filename, err)
	}
	return nil
}

type treeDrawer struct {
	graph    *cgraph.Graph
	features []string
	classes  []string
	unscale  func(feature int, v float64) float64
	next     int
}

func (d *treeDrawer) draw(n *model.TreeNode) (*cgraph.Node, error) {
	id := "n" + strconv.Itoa(d.next)
	d.next++
	node, err := d.graph.CreateNode(id)
	if err != nil {
		return nil, fmt.Errorf("report: node %s: %w", id, err)
	}
	node.SetShape(cgraph.BoxShape)
	node.SetLabel(d.label(n))
	if n.Leaf {
		return node, nil
	}

	for i, child := range []*model.TreeNode{n.Left, n.Right} {
		c, err := d.draw(child)
		if err != nil {
			return nil, err
		}
		e, err := d.graph.CreateEdge(id+"-"+strconv.Itoa(i), node, c)
		if err != nil {
			return nil, fmt.Errorf("report: edge from %s: %w", id, err)
		}
		if i == 0 {
			e.SetLabel("yes")
		} else {
			e.SetLabel("no")
		}
	}
	return node, nil
}

func (d *treeDrawer) label(n *model.TreeNode) string {
	var b strings.Builder
	if !n.Leaf {
		th := n.Threshold
		if d.unscale != nil {
			th = d.unscale(n.Feature, th)
		}
		fmt.Fprintf(&b, "%s <= %.3f\n", d.featureName(n.Feature), th)
	}
	fmt.Fprintf(&b, "samples = %d\nimpurity = %.3f\n", n.Samples, n.Impurity)
	counts := make([]string, len(n.Counts))
	for i, c := range n.Counts {
		counts[i] = strconv.Itoa(c)
	}
	fmt.Fprintf(&b, "counts = [%s]\nclass = %s", strings.Join(counts, ", "), d.className(n.Class))
	return b.String()
}

func (d *treeDrawer) featureName(j int) string {
	if j < len(d.features) {
		return d.features[j]
	}
	return "x" + strconv.Itoa(j)
}

func (d *treeDrawer) className(label int) string {
	if label >= 0 && label < len(d.classes) {
		return d.classes[label]
	}
	return strconv.Itoa(label)
}
