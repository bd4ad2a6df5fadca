package msbuild

import (
	"encoding/xml"
	"fmt"
)

// ProjectDefinition is the parsed, unevaluated <Project> tree of one project
// file. It is purely declarative; evaluation happens against a Session.
type ProjectDefinition struct {
	XMLName        xml.Name        `xml:"Project"`
	Sdk            string          `xml:"Sdk,attr,omitempty"`
	ToolsVersion   string          `xml:"ToolsVersion,attr,omitempty"`
	PropertyGroups []PropertyGroup `xml:"PropertyGroup"`
	ItemGroups     []ItemGroup     `xml:"ItemGroup"`
}

// PropertyGroup is one <PropertyGroup> element.
type PropertyGroup struct {
	Condition  string            `xml:"Condition,attr,omitempty"`
	Properties []PropertyElement `xml:",any"`
}

// PropertyElement is one property assignment; the element name is the
// property name.
type PropertyElement struct {
	XMLName   xml.Name
	Condition string `xml:"Condition,attr,omitempty"`
	Value     string `xml:",chardata"`
}

// ItemGroup is one <ItemGroup> element.
type ItemGroup struct {
	Condition string        `xml:"Condition,attr,omitempty"`
	Items     []ItemElement `xml:",any"`
}

// ItemElement is one item declaration; the element name is the item type.
type ItemElement struct {
	XMLName   xml.Name
	Condition string            `xml:"Condition,attr,omitempty"`
	Include   string            `xml:"Include,attr,omitempty"`
	Exclude   string            `xml:"Exclude,attr,omitempty"`
	Remove    string            `xml:"Remove,attr,omitempty"`
	Metadata  []MetadataElement `xml:",any"`
}

// MetadataElement is one custom metadata value declared on an item.
type MetadataElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ParseDefinition parses project file content into its declarative definition.
func ParseDefinition(content []byte) (*ProjectDefinition, error) {
	var definition ProjectDefinition
	if err := xml.Unmarshal(content, &definition); err != nil {
		return nil, fmt.Errorf("parsing project definition: %w", err)
	}
	return &definition, nil
}

// DeepClone returns an independent copy of the definition tree. Mutating the
// copy never affects the original.
func (d *ProjectDefinition) DeepClone() *ProjectDefinition {
	clone := &ProjectDefinition{
		XMLName:        d.XMLName,
		Sdk:            d.Sdk,
		ToolsVersion:   d.ToolsVersion,
		PropertyGroups: make([]PropertyGroup, len(d.PropertyGroups)),
		ItemGroups:     make([]ItemGroup, len(d.ItemGroups)),
	}
	for i, group := range d.PropertyGroups {
		cloned := PropertyGroup{
			Condition:  group.Condition,
			Properties: make([]PropertyElement, len(group.Properties)),
		}
		copy(cloned.Properties, group.Properties)
		clone.PropertyGroups[i] = cloned
	}
	for i, group := range d.ItemGroups {
		cloned := ItemGroup{
			Condition: group.Condition,
			Items:     make([]ItemElement, len(group.Items)),
		}
		for j, item := range group.Items {
			clonedItem := item
			clonedItem.Metadata = make([]MetadataElement, len(item.Metadata))
			copy(clonedItem.Metadata, item.Metadata)
			cloned.Items[j] = clonedItem
		}
		clone.ItemGroups[i] = cloned
	}
	return clone
}
