/*
Package vecmap provides an ordered map that keeps its entries in a single
slice, sorted by key.  Lookups are binary searches; inserts and removes
shift the entries after the affected position.  For small-to-medium maps,
and maps built mostly in key order, this beats a tree on memory and on
iteration speed, and it iterates and encodes in key order for free.

Uses

- Deterministic encoding of maps (JSON, CBOR, content hashes)

- Compact read-mostly lookup tables

- Building sorted output from unsorted, duplicate-laden input


Ordering

New and WithCapacity order keys of the builtin ordered types naturally.
NewFunc takes any comparison function, and NewKeyed uses a key's own Order
method.  A zero Map works for string, integer, float and []byte keys, and
for keys implementing Key.

Lookups by a probe of a different type than the key (say, a []byte among
string keys) go through SearchFunc, GetFunc and RemoveFunc, with a
comparison between a stored key and the probe that must agree with the
map's order.

Push appends in O(1) when the key is greater than every key present, and
otherwise hands the pair back untouched; callers that want it placed anyway
fall back to Insert.  Extend and the decoders do exactly that, so sorted
input builds in linear time and anything else still ends up sorted and
de-duplicated, with the last value for a key winning.

Positions

At, SetAt, KeyAt and EntryAt address the i-th smallest key directly.  Any
change to the set of keys shifts positions, and an out-of-range position
panics.

Iteration and borrowing

Iter, Keys, Values, ValuesMut and IntoIter walk the entries from either end,
report how many remain, and stay exhausted once the ends meet.  A Map is not
safe for concurrent use.  Views fail fast rather than observe a map whose
keys changed under them: advancing Iter, Keys or Values after an insert,
remove, push, pop or clear panics, and while a ValuesMut is outstanding
modifying the map or using any other view of it panics.

Snapshots

Save and Load keep encoded copies of a map in a Persist under names derived
from their blake2b hash, with an optional Cache of decoded copies.
*/
package vecmap
