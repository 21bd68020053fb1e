// Package notifications turns completed state transitions into user
// notifications.
//
// A transition declares symbolic recipient roles such as "creator",
// "assignee" or "approvers". The Dispatcher asks the entity's
// RecipientResolver for the users behind each role, drops duplicates,
// renders a Template and hands one Notification per recipient to a Sender.
// A failed send is logged and the remaining recipients are still notified.
//
// Manager is the default Sender. It persists through a Storage
// (MemoryStorage, RedisStorage) before attempting real-time delivery
// through a Deliverer (RedisDeliverer, MultiDeliverer, NoOpDeliverer).
//
//	storage := notifications.NewRedisStorage(rdb, notifications.WithRetention(30*24*time.Hour))
//	manager := notifications.NewManager(storage, notifications.NewRedisDeliverer(rdb, ""))
//	dispatcher := notifications.NewDispatcher(manager, notifications.WithTemplates(tpls))
//
// Participants implements the per-role fallback lookups shared by most
// entities; ParticipantsFunc defers building it until dispatch time.
package notifications
