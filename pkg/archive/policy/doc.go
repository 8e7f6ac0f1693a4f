// Package policy resolves archive retention policies.
//
// Every (collection, item type) pair has a built-in default:
//
//	collection  item type   time limit  max size
//	trash       packBundle  30 days     100
//	trash       deck        30 days     200
//	history     packBundle  90 days     500
//	history     deck        60 days     1000
//
// User overrides are merged field by field: a missing field keeps the default
// for that field, an explicit 0 disables the axis.
//
//	resolver := policy.NewResolver(&policy.Overrides{
//	    Trash: policy.ItemOverrides{
//	        PackBundle: &policy.Partial{MaxSize: ptr(50)},
//	    },
//	})
//	p, _ := resolver.Resolve(archive.CollectionTrash, archive.ItemTypePackBundle)
//	// p == Policy{TimeLimitDays: 30, MaxSize: 50}
//
// Overrides may also live in a YAML file that a Watcher reloads on change.
package policy
