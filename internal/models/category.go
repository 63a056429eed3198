package models

import (
	"fmt"
	"sort"
	"strings"
)

// Category names.
const (
	CategoryAsset    = "asset"
	CategoryServer   = "server"
	CategoryRouter   = "router"
	CategoryFirewall = "firewall"
	CategorySwitch   = "switch"
	CategoryLaptop   = "laptop"
	CategoryMonitor  = "monitor"
	CategoryDesktop  = "desktop"
	CategoryPrinter  = "printer"
)

// Category describes how records of one kind are identified and labelled.
type Category struct {
	Name string
	// Prefix is the uppercase tag in front of every identifier, e.g. SRV in SRV-001.
	Prefix string
	// Width is the minimum number of digits in the sequence part.
	Width int
	// NameLabel is the label used for the human name inside notes and in CSV headers.
	NameLabel string
	// Extensions lists the category-specific typed columns.
	Extensions []Extension
}

// Extension is a category-specific typed column.
type Extension string

const (
	ExtOSName          Extension = "os_name"
	ExtOSVersion       Extension = "os_version"
	ExtFirmwareVersion Extension = "firmware_version"
	ExtIPAddress       Extension = "ip_address"
)

var applianceExtensions = []Extension{ExtFirmwareVersion, ExtIPAddress}

var categories = map[string]Category{
	CategoryAsset:    {Name: CategoryAsset, Prefix: "AST", Width: 3, NameLabel: "Asset Name"},
	CategoryServer:   {Name: CategoryServer, Prefix: "SRV", Width: 3, NameLabel: "Server", Extensions: []Extension{ExtOSName, ExtOSVersion}},
	CategoryRouter:   {Name: CategoryRouter, Prefix: "RTR", Width: 3, NameLabel: "Router", Extensions: applianceExtensions},
	CategoryFirewall: {Name: CategoryFirewall, Prefix: "FW", Width: 3, NameLabel: "Firewall", Extensions: applianceExtensions},
	CategorySwitch:   {Name: CategorySwitch, Prefix: "SW", Width: 3, NameLabel: "Switch", Extensions: applianceExtensions},
	CategoryLaptop:   {Name: CategoryLaptop, Prefix: "LAP", Width: 3, NameLabel: "Laptop"},
	CategoryMonitor:  {Name: CategoryMonitor, Prefix: "MON", Width: 3, NameLabel: "Monitor"},
	CategoryDesktop:  {Name: CategoryDesktop, Prefix: "DESK", Width: 3, NameLabel: "Desktop"},
	CategoryPrinter:  {Name: CategoryPrinter, Prefix: "PRT", Width: 3, NameLabel: "Printer"},
}

// LookupCategory returns the category registered under name (case-insensitive).
func LookupCategory(name string) (Category, error) {
	c, ok := categories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Category{}, fmt.Errorf("unknown category %q", name)
	}
	return c, nil
}

// MustCategory is LookupCategory for names known at compile time.
func MustCategory(name string) Category {
	c, err := LookupCategory(name)
	if err != nil {
		panic(err)
	}
	return c
}

// CategoryNames returns all registered category names, sorted.
func CategoryNames() []string {
	names := make([]string, 0, len(categories))
	for n := range categories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the category carries extension e.
func (c Category) Has(e Extension) bool {
	for _, x := range c.Extensions {
		if x == e {
			return true
		}
	}
	return false
}
