package dialogue

import (
	"fmt"
	"iter"
	"slices"
)

// Validate lists authoring problems in the document. The sequence is lazy and
// keeps going after the first problem; nothing is modified.
func (d Document) Validate() iter.Seq[string] {
	return func(yield func(string) bool) {
		known := make(map[string]bool, len(d.Nodes))
		for _, n := range d.Nodes {
			if n.GUID != "" {
				known[n.GUID] = true
			}
		}
		exists := func(guid string) bool { return known[guid] }

		if len(d.Nodes) == 0 {
			if !yield("Graph has no nodes.") {
				return
			}
		}
		startMissing := len(d.Nodes) == 0
		if d.StartNodeGUID != "" {
			startMissing = !exists(d.StartNodeGUID)
		}
		if startMissing {
			if !yield("Start node is not set or missing from the list.") {
				return
			}
		}

		seen := make(map[string]bool, len(d.Nodes))
		for _, n := range d.Nodes {
			switch {
			case n.GUID == "":
				if !yield("A node has an empty GUID.") {
					return
				}
			case seen[n.GUID]:
				if !yield(fmt.Sprintf("Duplicate GUID found: %s", n.GUID)) {
					return
				}
			default:
				seen[n.GUID] = true
			}

			for i, opt := range n.Options {
				for _, problem := range optionProblems(n.GUID, i, opt, exists) {
					if !yield(problem) {
						return
					}
				}
			}
		}
	}
}

// Problems collects every validation problem.
func (d Document) Problems() []string {
	return slices.Collect(d.Validate())
}

// Validate lists authoring problems that survived loading: a missing start
// node, bad dice targets and dangling option targets.
func (g *Graph) Validate() iter.Seq[string] {
	return g.Document().Validate()
}

// Problems collects every validation problem.
func (g *Graph) Problems() []string {
	return slices.Collect(g.Validate())
}

func optionProblems(guid string, index int, opt Option, exists func(string) bool) []string {
	var problems []string
	dangling := func(target string) bool {
		return target != "" && !exists(target)
	}

	switch opt.Mode() {
	case ModeDice:
		if opt.Target < 0 {
			problems = append(problems, fmt.Sprintf("Node %s has a dice target < 0.", guid))
		}
		if dangling(opt.NextOnSuccessGUID) {
			problems = append(problems, fmt.Sprintf("Node %s has dice success pointing to missing GUID %s", guid, opt.NextOnSuccessGUID))
		}
		if dangling(opt.NextOnFailGUID) {
			problems = append(problems, fmt.Sprintf("Node %s has dice fail pointing to missing GUID %s", guid, opt.NextOnFailGUID))
		}
		if opt.LoadCreditsScene || opt.Action != "" {
			problems = append(problems, fmt.Sprintf("Node %s option %d sets both a dice check and a terminal action; the action is ignored.", guid, index))
		}
	case ModeAction:
		switch {
		case dangling(opt.NextNodeGUID):
			problems = append(problems, fmt.Sprintf("Node %s has option pointing to missing GUID %s", guid, opt.NextNodeGUID))
		case opt.NextNodeGUID != "":
			problems = append(problems, fmt.Sprintf("Node %s option %d triggers action %q and ignores nextNodeGuid %s.", guid, index, opt.ActionName(), opt.NextNodeGUID))
		}
	default:
		if dangling(opt.NextNodeGUID) {
			problems = append(problems, fmt.Sprintf("Node %s has option pointing to missing GUID %s", guid, opt.NextNodeGUID))
		}
	}
	return problems
}
