package mcpserver

// NoteRecordContract describes the canonical note record shape that
// LLM consumers should follow when creating or updating notes.
const NoteRecordContract = `# notat Note Record Contract

Every note stored by notat is a JSON record with this shape.

## Structure

` + "```" + `json
{
  "id": "4f8a8c2e-...",                  // assigned at creation, never changes
  "title": "Human-readable title",       // defaults to "Untitled note"
  "content": "Free-form body text",      // may be empty
  "isPinned": false,                     // pinned notes sort ahead of the rest
  "color": "blue",                       // one of: blue, amber, emerald, violet, slate
  "createdAt": "2026-01-15T09:30:00Z",   // RFC 3339, UTC, set once
  "updatedAt": "2026-01-20T14:05:00Z"    // RFC 3339, UTC, refreshed on content edits
}
` + "```" + `

## Rules

1. **Ids are server-side facts.** Never invent or rewrite an id; take it from
   the create_note result or a listing.
2. **Updates are patches.** Send only the fields you want to change; omitted
   fields keep their stored value.
3. **Colors** come from the fixed set above. Anything else is rejected.
4. **Pinning is not an edit.** toggle_pin_note flips the flag without touching
   updatedAt, so the note keeps its place in the recency order.
5. **Ordering** everywhere is pinned first, then most recently updated first.
6. **Deletes are idempotent.** Deleting an id that no longer exists succeeds.
`
