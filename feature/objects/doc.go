// Package objects exposes object storage prefixes as observable lists.
//
// A PrefixList holds the sorted keys stored under a prefix of a bucket.
// Refresh lists the prefix and publishes the difference to the previous
// listing as removals followed by insertions, so a PrefixList can be a
// child of a catalog composite. Concurrent refreshes of the same list share
// one listing.
//
// StatResolver turns a key into an Entry with the object's metadata. The
// catalog uses it to materialize composite elements lazily through its
// tiered cache.
//
// # Usage
//
//	keys := objects.NewPrefixList(client, "lists", "inbox/", logg)
//	if err := keys.Refresh(ctx); err != nil {
//	    return err
//	}
//	sub := keys.Subscribe(func(u list.Update[string]) { ... })
package objects
