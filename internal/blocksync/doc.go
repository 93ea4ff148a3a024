/*
Package blocksync tracks the progress of a block chain download.

The peer layer reports, after every block it hands over, how many blocks are
still missing before the local chain reaches the tip the peer advertised. A
Tracker turns that stream into three kinds of notifications, delivered to a
Listener:

	OnDownloadStart(blocks)  once, on the first positive remaining-count
	OnProgress(percent)      whenever the truncated percent changes
	OnDownloadComplete()     when the remaining-count reaches zero

and releases every goroutine blocked in Tracker.Await once the download is
complete.

A Tracker serves a single download session. The peer layer must deliver
events for one Tracker serially; the Tracker does no locking of its own
around its session state. Simulator is a stand-in peer that honours this
contract and is used by the syncwatch command and by tests.

Delivering a zero remaining-count twice is a caller error. The Tracker does
not detect it: the completion hook runs again and the completion signal gains
another permit.
*/
package blocksync
