package schema

import (
	"fmt"
)

type schemaNode struct {
	name         string
	dependencies []string
	visited      bool
	inStack      bool
}

// SortByDependency orders schemas so that every table referenced by a
// foreign key comes before the table holding the key.
func SortByDependency(schemas map[string]*Schema) ([]string, error) {
	nodes := make(map[string]*schemaNode)

	for _, name := range sortedKeys(schemas) {
		sch := schemas[name]
		node := &schemaNode{name: name}

		for _, relName := range sch.RelationNames() {
			relation := sch.Relations[relName]
			if OwnsForeignKey(&relation, sch) && relation.Model != name {
				node.dependencies = append(node.dependencies, relation.Model)
			}
		}

		nodes[name] = node
	}

	var sorted []string
	var visitNode func(string) error

	visitNode = func(name string) error {
		node, exists := nodes[name]
		if !exists {
			return nil
		}

		if node.inStack {
			return fmt.Errorf("circular dependency detected involving table: %s", name)
		}

		if node.visited {
			return nil
		}

		node.inStack = true
		for _, dep := range node.dependencies {
			if err := visitNode(dep); err != nil {
				return err
			}
		}
		node.inStack = false
		node.visited = true
		sorted = append(sorted, name)

		return nil
	}

	for _, name := range sortedKeys(schemas) {
		if err := visitNode(name); err != nil {
			return nil, err
		}
	}

	return sorted, nil
}
