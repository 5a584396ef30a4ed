// Package framelib implements the photo cycling engine for InkFrame.
// It decides which photo the frame shows next: a shuffle bag for random
// order with a no-repeat-per-pass guarantee, a sequential cycler for
// stable library order, a history stack for backward navigation, and
// best-effort persistence of the cycling position so a reboot resumes
// where the frame left off.
//
// The engine only ever manipulates photo identifiers. Listing and
// membership come from a Library implementation, position storage from a
// BlobStore implementation, and the actual e-ink render is performed by
// the caller after an operation returns.
package framelib
