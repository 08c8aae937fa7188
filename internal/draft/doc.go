// Package draft implements the email draft lifecycle: the session store
// holding at most one in-flight draft per user, and the controller that
// moves a draft through its states.
//
// A draft is born from a resolve+generate pair, reviewed and edited while
// Ready, and leaves the store when it reaches a terminal state:
//
//	requestDraft ──resolve──generate──▶ Ready
//	Ready ──editContent──▶ Ready
//	Ready ──confirmSend──▶ Sending ──ok──▶ Sent (cleared)
//	                               ──err─▶ Ready (retryable)
//	Ready ──discard──▶ Discarded (cleared)
//	any non-terminal ──idle timeout──▶ Discarded (cleared)
//
// Generation and resolution failures never leave a partial draft behind.
// The store serializes all transitions per user; distinct users never
// contend on the same lock.
package draft
